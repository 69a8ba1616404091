package feed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
)

// Column headers of the state licensing-lookup export. The optional signal
// columns are carried by enriched exports only.
const (
	ColLicenseNumber       = "License Number"
	ColLicenseHolder       = "License Holder"
	ColLicenseType         = "License Type"
	ColAddress             = "AddressLine1"
	ColCity                = "City"
	ColCapacity            = "Capacity"
	ColRevenue             = "Revenue"
	ColEIN                 = "EIN"
	ColIRSStatus           = "IRS Status"
	ColRegistrationAgeDays = "Registration Age Days"
	ColChargebackCount     = "Chargeback Count"
	ColClaimVolume         = "Claim Volume"
	ColGeoMismatch         = "Geo Mismatch"
)

var requiredColumns = []string{ColLicenseNumber, ColLicenseHolder}

// header maps normalized column names to their position in a row.
type header map[string]int

func newHeader(cols []string) (header, error) {
	h := make(header, len(cols))
	for i, c := range cols {
		h[normalize(c)] = i
	}
	for _, req := range requiredColumns {
		if _, ok := h[normalize(req)]; !ok {
			return nil, fmt.Errorf("feed: missing required column %q", req)
		}
	}
	return h, nil
}

func normalize(col string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
}

func (h header) get(row []string, col string) string {
	i, ok := h[normalize(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// toRecords converts data rows into raw records. A row whose optional numeric
// cell cannot be parsed keeps that field absent, so the rules reading it never
// fire. Fully blank rows are skipped.
func toRecords(h header, rows [][]string) []model.RawProviderRecord {
	records := make([]model.RawProviderRecord, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		records = append(records, model.RawProviderRecord{
			ProviderID:          h.get(row, ColLicenseNumber),
			LicenseHolder:       h.get(row, ColLicenseHolder),
			LicenseType:         h.get(row, ColLicenseType),
			Address:             h.get(row, ColAddress),
			City:                h.get(row, ColCity),
			EIN:                 h.get(row, ColEIN),
			IRSStatus:           h.get(row, ColIRSStatus),
			Capacity:            parseInt(h.get(row, ColCapacity)),
			Revenue:             parseMoney(h.get(row, ColRevenue)),
			RegistrationAgeDays: parseInt(h.get(row, ColRegistrationAgeDays)),
			ChargebackCount:     parseInt(h.get(row, ColChargebackCount)),
			ClaimVolume:         parseInt(h.get(row, ColClaimVolume)),
			GeoMismatch:         parseBool(h.get(row, ColGeoMismatch)),
		})
	}
	return records
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	// Spreadsheets often store whole counts as "12.0".
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		v := int(f)
		return &v
	}
	return nil
}

func parseMoney(s string) *decimal.Decimal {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func parseBool(s string) *bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return model.BoolPtr(true)
	case "false", "no", "n", "0":
		return model.BoolPtr(false)
	default:
		return nil
	}
}
