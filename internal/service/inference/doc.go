// Package inference turns the options given by the user into a complete,
// validated set of build options: defaults are filled in, aliases are
// normalized and the app name is guessed from the target page when missing.
package inference
