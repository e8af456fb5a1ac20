// Package destination resolves the directory an upload is written into.
//
// Resolve turns a user supplied path into an absolute, cleaned path that ends with
// the OS path separator. It rejects paths holding characters that are reserved on
// common filesystems (* ? " < > | :) and can create missing directories:
//
//	dir, err := destination.Resolve("./uploads", destination.WithCreate(true))
//	if err != nil {
//		return err
//	}
//	target := dir + "avatar.png"
//
// The process working directory is never changed; callers thread the returned
// path through every filesystem operation instead.
package destination
