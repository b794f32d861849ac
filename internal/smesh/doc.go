// Package smesh creates the foam discretized on a structured
// cartesian voxel grid, matching target porosity and strut content.
//
// Two nested closed-loop searches drive the stage. The domain size
// solver finds the voxel resolution at which binarizing the periodic
// surface yields the target porosity: a bigger box means relatively
// thinner walls and therefore higher porosity. With the domain fixed,
// the strut size solver finds the edge-size parameter at which the
// strut reconstruction tool yields the target strut content. Both
// delegate the numeric work to the solver package and talk to the
// external tools (binvox, foamreconstr) only through the narrow
// oracle interfaces defined here.
package smesh
