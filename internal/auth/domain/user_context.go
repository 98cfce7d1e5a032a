// Package domain defines the caller identity and the path-based permission model.
//
// Callers are authenticated outside this module; the resolved identity arrives as a
// UserContext and its Actor string is what permissions and audit records refer to.
package domain

// AuthMethod is how the boundary layer authenticated the caller.
type AuthMethod string

const (
	// AuthMethodToken is a bearer token issued to a user or a client.
	AuthMethodToken AuthMethod = "token"
	// AuthMethodMutualTLS is a client certificate carrying an application identity.
	AuthMethodMutualTLS AuthMethod = "mutual_tls"
)

// UserContext is the authenticated caller of a single request.
type UserContext struct {
	UserID     string
	UserName   string
	ClientID   string
	Issuer     string
	Scope      []string
	AuthMethod AuthMethod
}

// Actor is the stable identity string permissions are granted to:
//   - "mtls-app:<client id>" for mutual TLS callers
//   - "uaa-user:<user id>" for token callers acting as a user
//   - "uaa-client:<client id>" for token callers acting as themselves
//
// An unauthenticated context yields an empty actor, which matches no permission.
func (u UserContext) Actor() string {
	switch {
	case u.AuthMethod == AuthMethodMutualTLS && u.ClientID != "":
		return "mtls-app:" + u.ClientID
	case u.AuthMethod == AuthMethodToken && u.UserID != "":
		return "uaa-user:" + u.UserID
	case u.AuthMethod == AuthMethodToken && u.ClientID != "":
		return "uaa-client:" + u.ClientID
	default:
		return ""
	}
}
