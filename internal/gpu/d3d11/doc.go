// Package d3d11 implements the gpu interfaces on Direct3D 11 and DXGI
// through raw COM vtable calls. It builds only on Windows.
package d3d11
