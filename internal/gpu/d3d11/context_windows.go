//go:build windows

package d3d11

import (
	"math"
	"runtime"
	"unsafe"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

// ID3D11DeviceContext vtable slots.
const (
	ctxVSSetConstantBuffers   = 7
	ctxPSSetShaderResources   = 8
	ctxPSSetShader            = 9
	ctxPSSetSamplers          = 10
	ctxVSSetShader            = 11
	ctxDraw                   = 13
	ctxPSSetConstantBuffers   = 16
	ctxIASetInputLayout       = 17
	ctxIASetVertexBuffers     = 18
	ctxIASetPrimitiveTopology = 24
	ctxOMSetRenderTargets     = 33
	ctxOMSetDepthStencilState = 36
	ctxRSSetState             = 43
	ctxRSSetViewports         = 44
	ctxUpdateSubresource      = 48
	ctxClearRenderTargetView  = 50
	ctxClearDepthStencilView  = 53
)

type deviceContext struct{ object }

func (c *deviceContext) RSSetViewport(vp gpu.Viewport) {
	comVoid(c.ptr, ctxRSSetViewports, 1, uintptr(unsafe.Pointer(&vp)))
}

func (c *deviceContext) RSSetState(state gpu.RasterizerState) {
	comVoid(c.ptr, ctxRSSetState, raw(state))
}

func (c *deviceContext) OMSetRenderTargets(rtv gpu.RenderTargetView, dsv gpu.DepthStencilView) {
	target := raw(rtv)
	var count, views uintptr
	if target != 0 {
		count, views = 1, uintptr(unsafe.Pointer(&target))
	}
	comVoid(c.ptr, ctxOMSetRenderTargets, count, views, raw(dsv))
}

func (c *deviceContext) OMSetDepthStencilState(state gpu.DepthStencilState, stencilRef uint32) {
	comVoid(c.ptr, ctxOMSetDepthStencilState, raw(state), uintptr(stencilRef))
}

func (c *deviceContext) ClearRenderTargetView(rtv gpu.RenderTargetView, col gpu.Color) {
	comVoid(c.ptr, ctxClearRenderTargetView, raw(rtv), uintptr(unsafe.Pointer(&col)))
}

func (c *deviceContext) ClearDepthStencilView(dsv gpu.DepthStencilView, flags gpu.ClearFlags, depth float32, stencil uint8) {
	// The depth argument lands in XMM3; asmstdcall mirrors the first four
	// integer arguments into the float registers.
	comVoid(c.ptr, ctxClearDepthStencilView, raw(dsv), uintptr(flags), uintptr(math.Float32bits(depth)), uintptr(stencil))
}

func (c *deviceContext) IASetInputLayout(layout gpu.InputLayout) {
	comVoid(c.ptr, ctxIASetInputLayout, raw(layout))
}

func (c *deviceContext) IASetPrimitiveTopology(t gpu.Topology) {
	comVoid(c.ptr, ctxIASetPrimitiveTopology, uintptr(t))
}

func (c *deviceContext) IASetVertexBuffer(buf gpu.Buffer, stride, offset uint32) {
	b := raw(buf)
	comVoid(c.ptr, ctxIASetVertexBuffers, 0, 1,
		uintptr(unsafe.Pointer(&b)), uintptr(unsafe.Pointer(&stride)), uintptr(unsafe.Pointer(&offset)))
}

func (c *deviceContext) VSSetShader(vs gpu.VertexShader) {
	comVoid(c.ptr, ctxVSSetShader, raw(vs), 0, 0)
}

func (c *deviceContext) PSSetShader(ps gpu.PixelShader) {
	comVoid(c.ptr, ctxPSSetShader, raw(ps), 0, 0)
}

func (c *deviceContext) VSSetConstantBuffer(slot uint32, buf gpu.Buffer) {
	b := raw(buf)
	comVoid(c.ptr, ctxVSSetConstantBuffers, uintptr(slot), 1, uintptr(unsafe.Pointer(&b)))
}

func (c *deviceContext) PSSetConstantBuffer(slot uint32, buf gpu.Buffer) {
	b := raw(buf)
	comVoid(c.ptr, ctxPSSetConstantBuffers, uintptr(slot), 1, uintptr(unsafe.Pointer(&b)))
}

func (c *deviceContext) PSSetShaderResource(slot uint32, srv gpu.ShaderResourceView) {
	v := raw(srv)
	comVoid(c.ptr, ctxPSSetShaderResources, uintptr(slot), 1, uintptr(unsafe.Pointer(&v)))
}

func (c *deviceContext) PSSetSampler(slot uint32, s gpu.SamplerState) {
	v := raw(s)
	comVoid(c.ptr, ctxPSSetSamplers, uintptr(slot), 1, uintptr(unsafe.Pointer(&v)))
}

// UpdateSubresource replaces the whole of subresource 0 with data.
func (c *deviceContext) UpdateSubresource(res gpu.Resource, data []byte) {
	if len(data) == 0 {
		return
	}
	comVoid(c.ptr, ctxUpdateSubresource, raw(res), 0, 0, uintptr(unsafe.Pointer(&data[0])), 0, 0)
	runtime.KeepAlive(data)
}

func (c *deviceContext) Draw(vertexCount, startVertex uint32) {
	comVoid(c.ptr, ctxDraw, uintptr(vertexCount), uintptr(startVertex))
}
