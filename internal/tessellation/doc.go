// Package tessellation builds the dry foam skeleton: a periodic
// Laguerre tessellation of the packed spheres computed by Neper. The
// stage prepares Neper's seed files from the packing, runs the
// tessellation, and exports the cell edges in gnuplot format for the
// strut reconstruction tool.
package tessellation
