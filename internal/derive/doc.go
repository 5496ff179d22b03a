// Package derive turns a pepper's quality scores and ripeness estimate into
// practical estimates: shelf life under several storage conditions,
// nutrition per pepper, a market grade with a price estimate, usage
// suitability and a likely variety.
//
// Everything here is a pure function of its inputs.
package derive
