// Package types holds the small shared interfaces used across rigup
// packages. Keeping them here avoids import cycles between the
// filesystem implementations and the components that consume them.
package types
