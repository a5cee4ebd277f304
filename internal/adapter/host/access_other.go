//go:build !unix

package host

// accessWritable is a no-op where access(2) is unavailable; MkdirAll
// surfaces the permission error instead.
func accessWritable(string) error { return nil }
