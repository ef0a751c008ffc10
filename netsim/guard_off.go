//go:build !debug

package netsim

import "github.com/netsim-project/netsim/units"

// guardDelivery is a no-op outside -tags debug builds; see guard_on.go.
func (n *Network[T]) guardDelivery(_ units.PacketID) {}
