package nameservice_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/wallet"
	"github.com/ardanlabs/naivecoin/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Lookup(t *testing.T) {
	t.Log("Given the need to name the addresses of wallet files.")
	{
		dir := t.TempDir()

		w := wallet.Wallet{
			ID: "1",
			Addresses: []wallet.KeyPair{
				{Index: 0, Address: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"},
				{Index: 1, Address: "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"},
			},
		}

		data, err := json.Marshal(w)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to marshal the wallet: %s", failed, err)
		}

		if err := os.WriteFile(filepath.Join(dir, "kennedy.json"), data, 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the wallet file: %s", failed, err)
		}

		ns, err := nameservice.New(dir)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the name service: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct the name service.", success)

		tt := []struct {
			address string
			name    string
		}{
			{"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", "kennedy"},
			{"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4", "kennedy/1"},
			{"0xf01813e4b85e178a83e29b8e7bf26bd830a25f32", "kennedy"},
			{"0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76", "0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76"},
		}

		for _, test := range tt {
			if got := ns.Lookup(test.address); got != test.name {
				t.Errorf("\t%s\tShould name %s as %q : got %q", failed, test.address, test.name, got)
				continue
			}
			t.Logf("\t%s\tShould name %s as %q.", success, test.address, test.name)
		}

		if len(ns.Copy()) != 2 {
			t.Fatalf("\t%s\tShould copy the two named addresses.", failed)
		}
		t.Logf("\t%s\tShould copy the two named addresses.", success)
	}
}

func Test_MissingFolder(t *testing.T) {
	t.Log("Given the need to start without any wallet files.")
	{
		ns, err := nameservice.New(filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("\t%s\tShould start with a missing folder: %s", failed, err)
		}

		if len(ns.Copy()) != 0 {
			t.Fatalf("\t%s\tShould have no names.", failed)
		}
		t.Logf("\t%s\tShould start with no names.", success)
	}
}
