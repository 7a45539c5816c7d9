// Package dice implements dice formula parsing, rolling, and the stores
// for saved formulas and roll history.
//
// A formula is a sequence of +/- separated terms, each either a dice term
// (NdS, e.g. 2d6) or an integer modifier. Rolls record the individual die
// results alongside the final total so clients can replay them. Saved
// formulas are either global (no owner) or owned by a single user.
package dice
