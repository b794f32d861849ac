// Package packing generates a periodic packing of spheres whose
// diameters follow a configured cell size distribution. The packing
// seeds the Laguerre tessellation that defines the foam cells.
//
// Two backends are available: an external packing generator driven
// through its file-based interface with bounded retries, and a simple
// in-process rejection sampler for quick runs. Both produce the same
// artifact, a <name>Packing.csv file with sphere centers and
// diameters in a unit periodic cube.
package packing
