package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: fmt.Errorf("begin: %w", context.Canceled), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "connection exception class", err: &pgconn.PgError{Code: "08006"}, want: true},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, want: true},
		{name: "too many connections", err: &pgconn.PgError{Code: "53300"}, want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "string too long", err: fmt.Errorf("upsert: %w", &pgconn.PgError{Code: "22001"}), want: false},
		{name: "closed pool", err: errors.New("closed pool"), want: true},
		{name: "plain error", err: errors.New("something else"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectivityError(tt.err); got != tt.want {
				t.Errorf("IsConnectivityError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
