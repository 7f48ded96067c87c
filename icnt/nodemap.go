package icnt

import (
	"errors"
	"fmt"
)

// ErrInvalidNodeMap is returned when devices cannot be placed on the
// network nodes.
var ErrInvalidNodeMap = errors.New("invalid node map")

// NodeMap translates between host device IDs and network node IDs. Devices
// 0 to nShader-1 are shaders and the following nMem devices are memory
// partitions.
type NodeMap struct {
	nShader int
	nMem    int
	toNode  []int
	toDev   []int
}

// NewNodeMap places the devices on numNodes network nodes.
//
// Without useMap, device i sits on node i. With useMap, the memory
// partitions go to memNodes, or to the nodes right after the shaders if
// memNodes is empty, and the shaders fill the remaining nodes in order.
func NewNodeMap(
	nShader, nMem, numNodes int,
	useMap bool,
	memNodes []int,
) (*NodeMap, error) {
	if nShader < 0 || nMem < 0 {
		return nil, fmt.Errorf("%w: negative device count", ErrInvalidNodeMap)
	}

	if nShader+nMem > numNodes {
		return nil, fmt.Errorf("%w: %d shaders and %d memories do not fit "+
			"on %d nodes", ErrInvalidNodeMap, nShader, nMem, numNodes)
	}

	m := &NodeMap{
		nShader: nShader,
		nMem:    nMem,
		toNode:  make([]int, numNodes),
		toDev:   make([]int, numNodes),
	}

	if !useMap {
		for i := range m.toNode {
			m.toNode[i] = i
		}
	} else if err := m.place(memNodes); err != nil {
		return nil, err
	}

	for i := range m.toDev {
		m.toDev[i] = -1
	}

	for dev := 0; dev < m.numMapped(useMap); dev++ {
		m.toDev[m.toNode[dev]] = dev
	}

	return m, nil
}

func (m *NodeMap) numMapped(useMap bool) int {
	if useMap {
		return m.nShader + m.nMem
	}

	return len(m.toNode)
}

func (m *NodeMap) place(memNodes []int) error {
	numNodes := len(m.toNode)

	if len(memNodes) == 0 {
		memNodes = make([]int, m.nMem)
		for i := range memNodes {
			memNodes[i] = m.nShader + i
		}
	}

	if len(memNodes) != m.nMem {
		return fmt.Errorf("%w: memory_node_map has %d entries for %d "+
			"memory partitions", ErrInvalidNodeMap, len(memNodes), m.nMem)
	}

	taken := make([]bool, numNodes)
	for _, node := range memNodes {
		if node < 0 || node >= numNodes {
			return fmt.Errorf("%w: memory node %d out of range",
				ErrInvalidNodeMap, node)
		}

		if taken[node] {
			return fmt.Errorf("%w: memory node %d used twice",
				ErrInvalidNodeMap, node)
		}

		taken[node] = true
	}

	next := 0
	for dev := 0; dev < m.nShader; dev++ {
		for taken[next] {
			next++
		}

		m.toNode[dev] = next
		next++
	}

	for i, node := range memNodes {
		m.toNode[m.nShader+i] = node
	}

	for dev := m.nShader + m.nMem; dev < numNodes; dev++ {
		m.toNode[dev] = -1
	}

	return nil
}

// Node returns the network node of a device.
func (m *NodeMap) Node(device int) int {
	if device < 0 || device >= len(m.toNode) || m.toNode[device] < 0 {
		panic(fmt.Sprintf("device %d is not mapped", device))
	}

	return m.toNode[device]
}

// Device returns the device on a network node, or -1.
func (m *NodeMap) Device(node int) int {
	return m.toDev[node]
}

// IsShader tells if the device is a shader core.
func (m *NodeMap) IsShader(device int) bool {
	return device < m.nShader
}

// NumDevices returns the number of shaders and memory partitions.
func (m *NodeMap) NumDevices() int {
	return m.nShader + m.nMem
}

func (m *NodeMap) String() string {
	return fmt.Sprintf("node map %v, reverse %v", m.toNode, m.toDev)
}
