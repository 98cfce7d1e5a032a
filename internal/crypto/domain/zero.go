package domain

// Zero overwrites b with zeros. Used to drop key material once it is no longer needed.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
