// Package params builds the JSON parameter strings handed to worker tools.
//
// Tools on the worker side read their parameters by name, but the field
// order of the object is still visible in logs and in the worker's own
// echo of the request, so Build keeps keys in the order they are written
// instead of sorting them the way encoding/json does for maps.
package params
