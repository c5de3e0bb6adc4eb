package source

// WriterAlive reports whether the process that declared itself in a
// transcript's meta record still exists. Best effort: a zero or
// missing pid is treated as gone.
func WriterAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return processAlive(pid)
}
