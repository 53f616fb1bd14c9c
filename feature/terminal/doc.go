// Package terminal hosts a collection view in a bubbletea program.
//
// Surface turns the view's surface calls into tea messages. Model draws the
// ready nodes of the viewport, scrolls on key presses and reports every scroll
// to the view. Feeder is a delegate that answers batch fetches by appending a
// section of generated rows to a memsource data source.
package terminal
