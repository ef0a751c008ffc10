//go:build debug

package netsim

import (
	"strconv"

	cuckoo "github.com/seiflotfy/cuckoofilter"

	"github.com/netsim-project/netsim/cmn/debug"
	"github.com/netsim-project/netsim/units"
)

// guardDelivery is the -tags debug second line of defense for "no packet is
// delivered twice": a bounded probabilistic membership check
// over completed PacketIDs, independent of the order/map bookkeeping that
// already rules this out structurally. A hit here means that bookkeeping
// has a bug, not that the filter found a real duplicate to tolerate.
func (n *Network[T]) guardDelivery(id units.PacketID) {
	f, ok := n.guard.(*cuckoo.Filter)
	if !ok {
		f = cuckoo.NewDefaultCuckooFilter()
		n.guard = f
	}
	key := []byte(strconv.FormatUint(uint64(id), 10))
	debug.Assert(!f.Lookup(key), "packet delivered twice:", id)
	f.InsertUnique(key)
}
