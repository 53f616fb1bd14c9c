// Package filesource serves a YAML document of sections and keeps it in sync with
// the file.
//
// The document lists sections, each with a title and items:
//
//	sections:
//	  - title: Fruit
//	    items:
//	      - apple
//	      - id: pear
//	        body: A longer pear description.
//
// Items may be plain strings or id/body maps. Watch follows the file with
// fsnotify, coalesces bursts of events with a Debouncer and swaps the content in
// with a full reload, since a rewritten file carries no description of what
// changed.
package filesource
