//go:build !unix

package daemon

import "os"

// No advisory locking here; exclusivity rests on the socket bind alone.
func (l *LockFile) platformLock(*os.File) error { return nil }

func (l *LockFile) platformUnlock(*os.File) {}
