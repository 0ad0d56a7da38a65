// Package policy maps staff roles to the operations they may perform. Roles and
// capabilities are closed sets; the lookup table below is the only place access
// rules are written down.
package policy

import "strings"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := table[r]
	return r, ok
}

func (r Role) Valid() bool {
	_, ok := table[r]
	return ok
}

type Capability string

const (
	CatalogRead       Capability = "catalog.read"
	CatalogManage     Capability = "catalog.manage"
	OrdersCreate      Capability = "orders.create"
	OrdersUpdate      Capability = "orders.update"
	PaymentsRecord    Capability = "payments.record"
	RefundsAuthorize  Capability = "refunds.authorize"
	ShiftsOwn         Capability = "shifts.own"
	ShiftsManage      Capability = "shifts.manage"
	SettlementsManage Capability = "settlements.manage"
	ReportsView       Capability = "reports.view"
	InventoryManage   Capability = "inventory.manage"
	TablesManage      Capability = "tables.manage"
	UsersManage       Capability = "users.manage"
	SettingsManage    Capability = "settings.manage"
)

var cashier = []Capability{
	CatalogRead, OrdersCreate, OrdersUpdate, PaymentsRecord, ShiftsOwn,
}

var manager = append(append([]Capability{}, cashier...),
	CatalogManage, RefundsAuthorize, ShiftsManage, SettlementsManage,
	ReportsView, InventoryManage, TablesManage,
)

var admin = append(append([]Capability{}, manager...), UsersManage, SettingsManage)

var table = map[Role]map[Capability]struct{}{
	RoleAdmin:   set(admin),
	RoleManager: set(manager),
	RoleCashier: set(cashier),
}

func set(caps []Capability) map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		m[c] = struct{}{}
	}
	return m
}

// Can reports whether role holds capability. Unknown roles hold nothing.
func Can(role Role, capability Capability) bool {
	_, ok := table[role][capability]
	return ok
}

// Capabilities lists what a role may do, in declaration order.
func Capabilities(role Role) []Capability {
	var src []Capability
	switch role {
	case RoleAdmin:
		src = admin
	case RoleManager:
		src = manager
	case RoleCashier:
		src = cashier
	}
	return append([]Capability(nil), src...)
}
