package auth

// Principal is the authenticated identity attached to a request after
// credential verification. It is passed explicitly into every service
// operation; the core never reads identity from ambient context.
type Principal struct {
	UserID  int64
	IsAdmin bool
}
