package redisx

const (
	// Login state for a browser session: sess:{token} -> {"logged_in": ..., ...}
	KeySession = "sess:%s"

	// Cart lines for a browser session: cart:{token} -> [{"id": ...}, ...]
	KeyCart = "cart:%s"
)
