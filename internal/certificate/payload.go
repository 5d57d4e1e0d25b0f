package certificate

import (
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/ledgercert/internal/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/risk"
)

const payloadSeparator = "|"

// signingPayload is the field-ordered string handed to the signer:
//
//	ID:<uid>|INC:<income>|LOAN:<loan>|CV:<score>|TS:<unix millis>
//
// Only the timestamp varies between runs for the same inputs.
func signingPayload(p risk.Profile, id identity.Identity, at time.Time) []byte {
	fields := []string{
		"ID:" + id.UID(),
		"INC:" + formatFloat(p.TotalIncome),
		"LOAN:" + strconv.FormatInt(p.LoanEligibilityAmount, 10),
		"CV:" + formatFloat(p.StabilityScore),
		"TS:" + strconv.FormatInt(at.UnixMilli(), 10),
	}

	return []byte(strings.Join(fields, payloadSeparator))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
