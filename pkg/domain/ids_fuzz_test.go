//go:build go1.18

package domain

import (
	"testing"
)

// FuzzParseIdentity checks parsing never panics and accepted inputs
// round-trip through their canonical string form.
func FuzzParseIdentity(f *testing.F) {
	f.Add("")
	f.Add(sampleAddress)
	f.Add("0x0000000000000000000000000000000000000000")
	f.Add("0x")
	f.Add("'; DROP TABLE claims;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add(sampleAddress + "\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseIdentity(input)
		if err != nil {
			return
		}
		if id.IsZero() {
			t.Error("zero identity accepted")
		}
		roundTrip, err := ParseIdentity(id.String())
		if err != nil {
			t.Errorf("valid identity failed round-trip: %v", err)
		}
		if roundTrip != id {
			t.Error("round-trip changed identity value")
		}
	})
}

func FuzzParseAmount(f *testing.F) {
	f.Add("0")
	f.Add("6000000000000000")
	f.Add("-1")
	f.Add("1e9")

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseAmount(input)
		if err != nil {
			return
		}
		if v.Sign() < 0 {
			t.Errorf("negative amount accepted: %s", v)
		}
	})
}
