// Package text provides the string actions of the kernel.
//
// Both actions take a fixed configuration prefix and flatten the rest of
// their arguments into a sequence of inputs, appending one output per input.
//
// Actions:
//   - string/random: random strings over an alphabet, one per requested length
//   - string/replace: regex substitution over each subject string
package text
