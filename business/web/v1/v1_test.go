package v1_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/ardanlabs/naivecoin/business/web/v1"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/database"
	"github.com/ardanlabs/naivecoin/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_LedgerStatus(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
	}

	tt := []table{
		{"structural", &database.RuleError{Kind: database.KindStructural, Err: errors.New("no inputs")}, http.StatusBadRequest},
		{"validation", &database.RuleError{Kind: database.KindValidation, Err: errors.New("bad id")}, http.StatusBadRequest},
		{"authorization", &database.RuleError{Kind: database.KindAuthorization, Err: errors.New("bad sig")}, http.StatusForbidden},
		{"doublespend", &database.RuleError{Kind: database.KindDoubleSpend, Err: errors.New("claimed")}, http.StatusConflict},
		{"replay", fmt.Errorf("tx: %w", &database.RuleError{Kind: database.KindReplay, Err: errors.New("known")}), http.StatusConflict},
		{"conservation", &database.RuleError{Kind: database.KindConservation, Err: errors.New("overspend")}, http.StatusUnprocessableEntity},
		{"halted", fmt.Errorf("%w: disk", state.ErrHalted), http.StatusServiceUnavailable},
		{"notlonger", database.ErrNotLonger, http.StatusConflict},
	}

	t.Log("Given the need to report ledger errors with the right status.")
	{
		for testID, test := range tt {
			f := func(t *testing.T) {
				err := v1.NewLedgerError(test.err)

				reqErr := v1.GetRequestError(err)
				if reqErr == nil {
					t.Fatalf("\t%s\tTest %d:\tShould get a request error.", failed, testID)
				}

				if reqErr.Status != test.status {
					t.Fatalf("\t%s\tTest %d:\tShould get status %d : got %d", failed, testID, test.status, reqErr.Status)
				}
				t.Logf("\t%s\tTest %d:\tShould get status %d.", success, testID, test.status)

				if !errors.Is(err, test.err) {
					t.Fatalf("\t%s\tTest %d:\tShould keep the ledger error in the chain.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould keep the ledger error in the chain.", success, testID)
			}

			t.Run(test.name, f)
		}
	}

	t.Log("Given the need to leave other errors alone.")
	{
		err := errors.New("boom")
		if v1.NewLedgerError(err) != err || v1.IsRequestError(v1.NewLedgerError(err)) {
			t.Fatalf("\t%s\tShould return the error unchanged.", failed)
		}
		t.Logf("\t%s\tShould return the error unchanged.", success)
	}
}
