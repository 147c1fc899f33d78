// Package payment carries the checkout flow logic: deciding which payment
// rails a restaurant currently offers, polling a payment reference to a
// terminal status, and driving a single checkout attempt end to end.
package payment

import (
	"strings"

	"tamu-web/internal/backend"
)

// Availability is the resolved set of rails to offer for one restaurant.
type Availability struct {
	Mpesa         bool                   `json:"mpesa"`
	Card          bool                   `json:"card"`
	Cash          bool                   `json:"cash"`
	ManualMethods []backend.ManualMethod `json:"manualMethods"`
}

// ResolveAvailability merges the restaurant-level methods listing and the
// business-level payment config into the rails to display.
//
// STK push needs the enabled flag from either source AND at least one
// aggregator identifier: a rail can be switched on in business settings
// without ever having been wired to the aggregator, and offering it then
// guarantees a failed initiation. Card and cash are plain OR of the two
// sources. When neither source has loaded, nothing is offered.
func ResolveAvailability(methods *backend.PaymentMethods, config *backend.PaymentConfig) Availability {
	if methods == nil && config == nil {
		return Availability{ManualMethods: []backend.ManualMethod{}}
	}

	var out Availability

	mpesaEnabled := false
	if config != nil && config.EnabledMethods.Mpesa {
		mpesaEnabled = true
	}
	if methods != nil && methods.Enabled.Mpesa {
		mpesaEnabled = true
	}
	out.Mpesa = mpesaEnabled && instasendReady(config)

	if config != nil {
		out.Card = out.Card || config.EnabledMethods.Card
		out.Cash = out.Cash || config.EnabledMethods.Cash
	}
	if methods != nil {
		out.Card = out.Card || methods.Enabled.Card
		out.Cash = out.Cash || methods.Enabled.Cash
	}

	var configMethods, endpointMethods []backend.ManualMethod
	if config != nil {
		configMethods = config.ManualMethods
	}
	if methods != nil {
		endpointMethods = methods.ManualMpesaMethods
	}
	out.ManualMethods = mergeManualMethods(configMethods, endpointMethods)

	return out
}

func instasendReady(config *backend.PaymentConfig) bool {
	if config == nil || config.Instasend == nil {
		return false
	}
	ins := config.Instasend
	return strings.TrimSpace(ins.SubMerchantID) != "" ||
		strings.TrimSpace(ins.MpesaProductCode) != "" ||
		strings.TrimSpace(ins.StoreID) != ""
}

// mergeManualMethods deduplicates the union of both sources. Config entries
// are inserted first and endpoint entries second, so on an identical key the
// endpoint entry wins while first-insertion order is preserved.
func mergeManualMethods(config, endpoint []backend.ManualMethod) []backend.ManualMethod {
	type slot struct {
		index  int
		method backend.ManualMethod
	}
	seen := make(map[string]*slot)
	order := 0

	insert := func(m backend.ManualMethod) {
		key := manualMethodKey(m)
		if existing, ok := seen[key]; ok {
			existing.method = m
			return
		}
		seen[key] = &slot{index: order, method: m}
		order++
	}

	for _, m := range config {
		insert(m)
	}
	for _, m := range endpoint {
		insert(m)
	}

	out := make([]backend.ManualMethod, order)
	for _, s := range seen {
		out[s.index] = s.method
	}
	return out
}

func manualMethodKey(m backend.ManualMethod) string {
	return m.ID + "|" + m.Type + "|" + m.Number + "|" + m.Account
}

// FindManualMethod resolves a method id against the offered list.
func (a Availability) FindManualMethod(id string) (backend.ManualMethod, bool) {
	for _, m := range a.ManualMethods {
		if m.ID == id {
			return m, true
		}
	}
	return backend.ManualMethod{}, false
}
