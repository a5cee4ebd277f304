//go:build unix

package host

import "golang.org/x/sys/unix"

// accessWritable checks write+search permission using the real uid/gid,
// which catches cases plain Stat mode bits miss (ACLs, read-only mounts).
func accessWritable(dir string) error {
	return unix.Access(dir, unix.W_OK|unix.X_OK)
}
