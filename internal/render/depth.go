package render

import (
	"fmt"

	"github.com/breeze-rmm/deskmirror/internal/gpu"
)

// depthStencilDesc returns the shared depth/stencil configuration with the
// depth test switched on or off. Stencil counts depth failures: front faces
// increment, back faces decrement.
func depthStencilDesc(depth bool) gpu.DepthStencilDesc {
	return gpu.DepthStencilDesc{
		DepthEnable:      depth,
		DepthWriteAll:    true,
		DepthFunc:        gpu.ComparisonLess,
		StencilEnable:    true,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0xFF,
		FrontFace: gpu.StencilOpDesc{
			FailOp:      gpu.StencilOpKeep,
			DepthFailOp: gpu.StencilOpIncr,
			PassOp:      gpu.StencilOpKeep,
			Func:        gpu.ComparisonAlways,
		},
		BackFace: gpu.StencilOpDesc{
			FailOp:      gpu.StencilOpKeep,
			DepthFailOp: gpu.StencilOpDecr,
			PassOp:      gpu.StencilOpKeep,
			Func:        gpu.ComparisonAlways,
		},
	}
}

// DepthStates holds the depth-tested and depth-disabled states.
type DepthStates struct {
	Enabled  gpu.DepthStencilState
	Disabled gpu.DepthStencilState
}

func NewDepthStates(dev gpu.Device) (*DepthStates, error) {
	on, err := dev.CreateDepthStencilState(depthStencilDesc(true))
	if err != nil {
		return nil, fmt.Errorf("create depth-enabled state: %w", err)
	}
	off, err := dev.CreateDepthStencilState(depthStencilDesc(false))
	if err != nil {
		on.Release()
		return nil, fmt.Errorf("create depth-disabled state: %w", err)
	}
	return &DepthStates{Enabled: on, Disabled: off}, nil
}

// Select returns the state for depth testing on or off.
func (s *DepthStates) Select(depth bool) gpu.DepthStencilState {
	if depth {
		return s.Enabled
	}
	return s.Disabled
}

func (s *DepthStates) Release() {
	if s == nil {
		return
	}
	gpu.SafeRelease(s.Enabled, s.Disabled)
	s.Enabled, s.Disabled = nil, nil
}
