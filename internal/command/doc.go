// Package command turns one line of the script grammar into a Command.
//
//	set PARAMETER [of|for NAME VAL [and NAME VAL [and NAME VAL]]] to VALUE
//	check|read|get PARAMETER [of|for NAME VAL ...]
//
// Ownership boundary:
// - tokenizing and classifying a line (write vs query)
// - resolving the parameter and its sub-targets against a catalog
// - encoding the value text into the 32-bit payload
package command
