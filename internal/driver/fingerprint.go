package driver

import (
	"crypto/sha256"
	"strconv"

	"capycop/internal/rule"
)

// RulesFingerprint: H(name || severity || params ...) по всем правилам в
// порядке запуска. Changing any setting that can change findings changes
// the fingerprint.
func RulesFingerprint(rules []*rule.Rule) [sha256.Size]byte {
	h := sha256.New()
	for _, rl := range rules {
		_, _ = h.Write([]byte(rl.Name))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(strconv.Itoa(int(rl.Severity))))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(strconv.FormatBool(rl.SafeAutocorrect)))
		for _, p := range rl.Params {
			_, _ = h.Write([]byte(p))
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte{0xFF})
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
