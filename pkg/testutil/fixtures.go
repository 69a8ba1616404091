package testutil

import "time"

// Fixed identifiers and timestamps for deterministic testing.
const (
	TestProviderID1 = "1083000"
	TestProviderID2 = "1083001"
	TestProviderID3 = "1083002"
)

var (
	TestIngestedAt = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	TestLaterAt    = TestIngestedAt.Add(24 * time.Hour)
)

// LicensingCSV is a small licensing-lookup export in the state's column layout.
const LicensingCSV = `License Number,License Holder,License Type,AddressLine1,City,Capacity,Revenue,Chargeback Count,Registration Age Days,Geo Mismatch
1083000,Little Sprouts Childcare,Child Care Center,12 Elm St,Minneapolis,45,,,,
1083001,Shell Holdings Inc,Child Care Center,900 Main St,Minneapolis,2,650000,5,10,true
1083002,Northside Kids LLC,Family Child Care,3 Oak Ave,St. Paul,12,,0,400,false
,Missing Number Daycare,Child Care Center,7 Pine Rd,Minneapolis,30,,,,
`
