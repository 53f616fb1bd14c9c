// Package objectsource serves the objects of a bucket as nodes whose heavy body
// lives in object storage.
//
// Objects are grouped into sections by the first path segment below the prefix;
// objects directly under the prefix form a section named "". Nodes measure from
// the object size recorded in the listing, so layout never touches the network.
// The body is downloaded by Load when the node enters the working range and
// dropped again by Purge on eviction.
package objectsource
