package fakegpu

import (
	"errors"
	"fmt"
)

// Compiler returns deterministic pseudo-bytecode and records what it compiled.
type Compiler struct {
	// Fail names source files whose compilation fails.
	Fail  map[string]bool
	Calls []string
}

func (c *Compiler) Compile(source []byte, name, entry, target string) ([]byte, error) {
	c.Calls = append(c.Calls, fmt.Sprintf("%s:%s:%s", name, entry, target))
	if c.Fail[name] {
		return nil, errors.New(name + "(1,1): error X3000: syntax error")
	}
	return []byte(fmt.Sprintf("dxbc:%s:%s:%s:%d", name, entry, target, len(source))), nil
}
