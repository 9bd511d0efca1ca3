package entity

// Roles que emite el colaborador de autenticación en el token.
const (
	RoleAdmin     = "admin"     // valida, rechaza, despacha
	RoleBodeguero = "bodeguero" // contenedores, traslados, ajustes, despachos
	RoleVendedor  = "vendedor"  // crea y edita reservas
)

// Actor quien ejecuta una operación (viene del token ya validado; el núcleo no autoriza).
type Actor struct {
	UserID string
	Role   string
}

// User usuario que inicia sesión. El alta la hace el colaborador de autenticación.
type User struct {
	ID           string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	Active       bool
}
