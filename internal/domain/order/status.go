package order

// transitions maps a current status to the set of statuses it may move to.
// Statuses absent from the outer map are terminal.
type transitions[S ~string] map[S]map[S]struct{}

func (t transitions[S]) allowed(from, to S) bool {
	_, ok := t[from][to]
	return ok
}

func (t transitions[S]) terminal(s S) bool {
	_, ok := t[s]
	return !ok
}

func set[S ~string](ss ...S) map[S]struct{} {
	m := make(map[S]struct{}, len(ss))
	for _, s := range ss {
		m[s] = struct{}{}
	}
	return m
}

// PurchaseStatus is the lifecycle status of a procurement order.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseOrdered   PurchaseStatus = "ordered"
	PurchaseReceived  PurchaseStatus = "received"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

var purchaseTransitions = transitions[PurchaseStatus]{
	PurchasePending: set(PurchasePending, PurchaseOrdered, PurchaseReceived, PurchaseCancelled),
	PurchaseOrdered: set(PurchasePending, PurchaseOrdered, PurchaseReceived, PurchaseCancelled),
}

// Valid reports whether s is a known status.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchasePending, PurchaseOrdered, PurchaseReceived, PurchaseCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s PurchaseStatus) Terminal() bool { return purchaseTransitions.terminal(s) }

// Editable reports whether items, discount and tax may change in s.
func (s PurchaseStatus) Editable() bool {
	return s == PurchasePending || s == PurchaseOrdered
}

// CanTransitionTo reports whether to is reachable from s.
func (s PurchaseStatus) CanTransitionTo(to PurchaseStatus) bool {
	return purchaseTransitions.allowed(s, to)
}

// ServiceStatus is the lifecycle status of a service order.
type ServiceStatus string

const (
	ServicePending    ServiceStatus = "pending"
	ServiceInProgress ServiceStatus = "in_progress"
	ServiceCompleted  ServiceStatus = "completed"
	ServicePaid       ServiceStatus = "paid"
	ServiceCancelled  ServiceStatus = "cancelled"
)

var serviceTransitions = func() transitions[ServiceStatus] {
	all := set(ServicePending, ServiceInProgress, ServiceCompleted, ServicePaid, ServiceCancelled)
	return transitions[ServiceStatus]{
		ServicePending:    all,
		ServiceInProgress: all,
		ServiceCompleted:  all,
	}
}()

// Valid reports whether s is a known status.
func (s ServiceStatus) Valid() bool {
	switch s {
	case ServicePending, ServiceInProgress, ServiceCompleted, ServicePaid, ServiceCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ServiceStatus) Terminal() bool { return serviceTransitions.terminal(s) }

// Editable reports whether items, discount and tax may change in s.
func (s ServiceStatus) Editable() bool { return !s.Terminal() }

// CanTransitionTo reports whether to is reachable from s.
func (s ServiceStatus) CanTransitionTo(to ServiceStatus) bool {
	return serviceTransitions.allowed(s, to)
}

// RequiresOdometer reports whether entering s needs an odometer reading.
func (s ServiceStatus) RequiresOdometer() bool {
	return s == ServiceCompleted || s == ServicePaid
}
