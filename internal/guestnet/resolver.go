// Package guestnet discovers the network identity of powered-on guests.
package guestnet

import (
	"context"
	"net"
	"time"

	"github.com/go-logr/logr"

	"github.com/vmfleet/vmfleet/internal/platform/vsphere"
)

// Identity is the MAC and address of a guest's primary network adapter.
// Either field may be empty when the guest never reported it.
type Identity struct {
	MAC string
	IP  string
}

// IPOrNone returns the address, or "none" when the guest never reported
// one of the requested family.
func (id Identity) IPOrNone() string {
	if id.IP == "" {
		return "none"
	}
	return id.IP
}

// MACOrNone returns the MAC, or "none" when the guest never reported one.
func (id Identity) MACOrNone() string {
	if id.MAC == "" {
		return "none"
	}
	return id.MAC
}

// Resolver polls a guest's reported adapters until the primary adapter
// shows a MAC and an address of the requested family, or MaxWait elapses.
type Resolver struct {
	Interval time.Duration
	MaxWait  time.Duration
	IPv6     bool
	Log      logr.Logger
}

// Resolve polls the guest and returns whatever identity subset was found
// by the deadline. A missing address is not an error; MAC and address are
// collected independently as either becomes visible.
func (r Resolver) Resolve(ctx context.Context, vm vsphere.VirtualMachine) Identity {
	var id Identity
	deadline := time.NewTimer(r.MaxWait)
	defer deadline.Stop()
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		nics, err := vm.GuestNICs(ctx)
		if err != nil {
			r.Log.V(2).Info("guest network query failed, retrying", "unit", vm.Name(), "reason", err.Error())
		}

		for _, nic := range nics {
			if id.MAC == "" && nic.MAC != "" {
				r.Log.V(2).Info("mac address found", "unit", vm.Name(), "mac", nic.MAC)
				id.MAC = nic.MAC
			}
			if id.IP == "" {
				for _, addr := range nic.IPs {
					if usable(addr, r.IPv6) {
						r.Log.V(2).Info("ip address found", "unit", vm.Name(), "ip", addr)
						id.IP = addr
						break
					}
				}
			}
		}

		if id.MAC != "" && id.IP != "" {
			return id
		}

		select {
		case <-ctx.Done():
			return id
		case <-deadline.C:
			r.Log.V(1).Info("guest identity incomplete at deadline", "unit", vm.Name(), "mac", id.MACOrNone(), "ip", id.IPOrNone())
			return id
		case <-ticker.C:
		}
	}
}

// usable reports whether addr is a routable address of the requested
// family. Loopback and link-local addresses never qualify.
func usable(addr string, ipv6 bool) bool {
	ip := net.ParseIP(addr)
	if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return false
	}
	if ipv6 {
		return ip.To4() == nil
	}
	return ip.To4() != nil
}
