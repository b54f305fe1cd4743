// Package joint: fixed joints have no configuration, velocity, or
// transform math of their own — Joint.Transform and Joint.Twist
// special-case Fixed directly in joint.go, and Joint.BiasAcceleration is
// zero for every variant. This
// file exists only to keep one source file per variant, matching the
// rest of the package's layout.
package joint
