/*
	Package dvid provides types, constants, and functions that have no other dependencies
	and can be used by all packages within dvedit.  This includes point and chunk
	coordinates, point parsing, and the leveled logging used across the server and the
	density volume packages.
*/
package dvid
