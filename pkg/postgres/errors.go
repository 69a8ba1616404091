package postgres

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsConnectivityError reports whether err means the database could not be
// reached, as opposed to a statement the server rejected.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exception; 57P0x is operator intervention.
		return strings.HasPrefix(pgErr.Code, "08") ||
			pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03" ||
			pgErr.Code == "53300"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if pgconn.Timeout(err) {
		return true
	}

	return strings.Contains(err.Error(), "closed pool") ||
		strings.Contains(err.Error(), "conn closed")
}
