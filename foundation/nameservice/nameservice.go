// Package nameservice reads the wallet files in a folder and creates a name
// service lookup for the addresses they hold.
package nameservice

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/naivecoin/foundation/blockchain/wallet"
)

// NameService maintains a map of addresses for name lookup. Lookups ignore
// the case of the address.
type NameService struct {
	addresses map[string]string
	lower     map[string]string
}

// New constructs a name service with the addresses of the wallet files found
// under the root folder. The first address of a wallet takes the file name,
// the others take the file name with the index appended.
func New(root string) (*NameService, error) {
	ns := NameService{
		addresses: make(map[string]string),
		lower:     make(map[string]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".json" {
			return nil
		}

		content, err := os.ReadFile(fileName)
		if err != nil {
			return err
		}

		var w wallet.Wallet
		if err := json.Unmarshal(content, &w); err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		name := strings.TrimSuffix(path.Base(fileName), ".json")
		for _, kp := range w.Addresses {
			named := name
			if kp.Index != 0 {
				named = fmt.Sprintf("%s/%d", name, kp.Index)
			}

			ns.addresses[kp.Address] = named
			ns.lower[strings.ToLower(kp.Address)] = named
		}

		return nil
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return &ns, nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.lower[strings.ToLower(address)]
	if !exists {
		return address
	}
	return name
}

// Copy returns a copy of the map of names and addresses.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.addresses))
	for address, name := range ns.addresses {
		cpy[address] = name
	}
	return cpy
}
