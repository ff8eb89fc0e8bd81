package httpkit

// MountUnder groups routes under a base path
// if base is empty, fn mounts directly on r
func MountUnder(r Router, base string, fn func(Router)) {
	if base == "" {
		fn(r)
		return
	}
	r.Route(base, fn)
}
