// Package permission modela los permisos module.action como valores tipados.
// Los grants se parsean una sola vez; la verificación es pertenencia a conjunto.
package permission

import (
	"fmt"
	"strings"
)

// Module área funcional protegida.
type Module uint8

const (
	ModulePOS Module = iota + 1
	ModuleStock
	ModuleSales
	ModulePurchase
	ModuleInvoicing
	ModuleMRP
	ModuleAccounting
	ModuleAdmin
	ModuleThirdParty
)

var moduleNames = map[Module]string{
	ModulePOS:        "pos",
	ModuleStock:      "stock",
	ModuleSales:      "sales",
	ModulePurchase:   "purchase",
	ModuleInvoicing:  "invoicing",
	ModuleMRP:        "mrp",
	ModuleAccounting: "accounting",
	ModuleAdmin:      "admin",
	ModuleThirdParty: "third_party",
}

func (m Module) String() string {
	if s, ok := moduleNames[m]; ok {
		return s
	}
	return fmt.Sprintf("module(%d)", uint8(m))
}

// Action operación sobre un módulo.
type Action uint8

const (
	ActionView Action = iota + 1
	ActionCreate
	ActionEdit
	ActionDelete
	ActionValidate
	ActionExport
)

var actionNames = map[Action]string{
	ActionView:     "view",
	ActionCreate:   "create",
	ActionEdit:     "edit",
	ActionDelete:   "delete",
	ActionValidate: "validate",
	ActionExport:   "export",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Permission permiso concreto requerido por una operación.
type Permission struct {
	Module Module
	Action Action
}

func (p Permission) String() string { return p.Module.String() + "." + p.Action.String() }

// Of atajo para construir un Permission.
func Of(m Module, a Action) Permission { return Permission{Module: m, Action: a} }

// Grant permiso otorgado; los comodines se representan con flags explícitos.
type Grant struct {
	Module    Module
	Action    Action
	AnyModule bool
	AnyAction bool
}

func (g Grant) String() string {
	m, a := "*", "*"
	if !g.AnyModule {
		m = g.Module.String()
	}
	if !g.AnyAction {
		a = g.Action.String()
	}
	return m + "." + a
}

// ParseGrant convierte "module.action", "module.*", "*.action" o "*.*".
func ParseGrant(s string) (Grant, error) {
	mod, act, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || mod == "" || act == "" {
		return Grant{}, fmt.Errorf("permiso mal formado: %q", s)
	}
	var g Grant
	if mod == "*" {
		g.AnyModule = true
	} else {
		m, found := lookupModule(mod)
		if !found {
			return Grant{}, fmt.Errorf("módulo desconocido: %q", mod)
		}
		g.Module = m
	}
	if act == "*" {
		g.AnyAction = true
	} else {
		a, found := lookupAction(act)
		if !found {
			return Grant{}, fmt.Errorf("acción desconocida: %q", act)
		}
		g.Action = a
	}
	return g, nil
}

func lookupModule(s string) (Module, bool) {
	for m, name := range moduleNames {
		if name == s {
			return m, true
		}
	}
	return 0, false
}

func lookupAction(s string) (Action, bool) {
	for a, name := range actionNames {
		if name == s {
			return a, true
		}
	}
	return 0, false
}

// Grants conjunto de permisos otorgados a un principal.
type Grants struct {
	all     bool
	modules map[Module]struct{}
	actions map[Action]struct{}
	exact   map[Permission]struct{}
}

// NewGrants arma el conjunto a partir de grants ya parseados.
func NewGrants(gs ...Grant) Grants {
	out := Grants{
		modules: make(map[Module]struct{}),
		actions: make(map[Action]struct{}),
		exact:   make(map[Permission]struct{}),
	}
	for _, g := range gs {
		switch {
		case g.AnyModule && g.AnyAction:
			out.all = true
		case g.AnyAction:
			out.modules[g.Module] = struct{}{}
		case g.AnyModule:
			out.actions[g.Action] = struct{}{}
		default:
			out.exact[Permission{Module: g.Module, Action: g.Action}] = struct{}{}
		}
	}
	return out
}

// ParseGrants parsea una lista de cadenas. Las entradas desconocidas se devuelven aparte
// y no otorgan nada.
func ParseGrants(raw []string) (Grants, []string) {
	gs := make([]Grant, 0, len(raw))
	var invalid []string
	for _, s := range raw {
		g, err := ParseGrant(s)
		if err != nil {
			invalid = append(invalid, s)
			continue
		}
		gs = append(gs, g)
	}
	return NewGrants(gs...), invalid
}

// Allows indica si el conjunto cubre el permiso requerido.
func (g Grants) Allows(p Permission) bool {
	if g.all {
		return true
	}
	if _, ok := g.modules[p.Module]; ok {
		return true
	}
	if _, ok := g.actions[p.Action]; ok {
		return true
	}
	_, ok := g.exact[p]
	return ok
}
