// Package artifact resolves artifact paths and detects rebuilds.
//
// The canonical path is where the host expects the current artifact to
// live. It is never loaded directly: every load clones it to a shadow path
// in the same directory (marker inserted before the extension) and loads
// the clone, so a build tool can overwrite the canonical file freely even
// on platforms that lock open files.
//
// Change detection is a synchronous Poll: the host asks, nothing is
// delivered in the background. StatDetector compares modification times on
// every call; NotifyDetector uses fsnotify to skip the stat on quiet ticks
// but confirms every positive decision against the modification time, so
// both satisfy the same contract.
package artifact
