package storage

import (
	"fmt"

	"github.com/tkrejci/dfscore/internal/namingapi"
	"github.com/tkrejci/dfscore/internal/rmi"
)

// RegisterWithNaming announces this node's data and command proxies to the
// naming node at registrationAddr along with every file already on local
// disk, deletes whichever of those the naming node reports as already
// known elsewhere, and prunes directories left empty by that deletion.
func (n *Node) RegisterWithNaming(registrationAddr string, data, control rmi.Proxy) error {
	local, err := n.LocalFiles()
	if err != nil {
		return err
	}

	proxy := namingapi.NewRegistrationProxy(registrationAddr)
	duplicates, err := proxy.Register(data, control, local)
	if err != nil {
		return fmt.Errorf("storage: register with naming node at %s: %w", registrationAddr, err)
	}

	for _, p := range duplicates {
		if _, err := n.Delete(p); err != nil {
			n.log.Warn("deleting duplicate %s reported by naming node: %v", p, err)
		}
	}

	if err := n.PruneEmptyDirectories(); err != nil {
		n.log.Warn("pruning empty directories after registration: %v", err)
	}

	n.log.Info("registered with naming node at %s (%d local files, %d duplicates removed)", registrationAddr, len(local), len(duplicates))
	return nil
}
