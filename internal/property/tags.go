package property

import "fmt"

// Kind is a property tag the kernel knows how to send.
type Kind uint8

// Property tags for framebuffer setup (Raspberry Pi specific)
const (
	KindAllocateBuffer Kind = iota
	KindReleaseBuffer
	KindGetPhysicalDimensions
	KindSetPhysicalDimensions
	KindGetVirtualDimensions
	KindSetVirtualDimensions
	KindGetBitsPerPixel
	KindSetBitsPerPixel
	KindGetBytesPerRow
	numKinds
)

// tagLayout is everything serialization and parsing need to know about a tag.
type tagLayout struct {
	name string
	id   uint32
	// valueBytes is the value buffer size: the larger of request and response.
	valueBytes uint32
	// args is the number of request words the caller supplies.
	args int
}

var layouts = [numKinds]tagLayout{
	KindAllocateBuffer:        {"AllocateBuffer", 0x00040001, 8, 1},
	KindReleaseBuffer:         {"ReleaseBuffer", 0x00048001, 0, 0},
	KindGetPhysicalDimensions: {"GetPhysicalDimensions", 0x00040003, 8, 0},
	KindSetPhysicalDimensions: {"SetPhysicalDimensions", 0x00048003, 8, 2},
	KindGetVirtualDimensions:  {"GetVirtualDimensions", 0x00040004, 8, 0},
	KindSetVirtualDimensions:  {"SetVirtualDimensions", 0x00048004, 8, 2},
	KindGetBitsPerPixel:       {"GetBitsPerPixel", 0x00040005, 4, 0},
	KindSetBitsPerPixel:       {"SetBitsPerPixel", 0x00048005, 4, 1},
	KindGetBytesPerRow:        {"GetBytesPerRow", 0x00040008, 4, 0},
}

func (k Kind) layout() tagLayout {
	if k >= numKinds {
		panic(fmt.Sprintf("property: unknown tag kind %d", k))
	}
	return layouts[k]
}

// ID is the tag identifier the firmware expects.
func (k Kind) ID() uint32 { return k.layout().id }

// ValueWords is the size of the tag's value buffer in words.
func (k Kind) ValueWords() int { return int(k.layout().valueBytes / 4) }

// Args is how many request words the tag carries.
func (k Kind) Args() int { return k.layout().args }

func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return layouts[k].name
}

// KindForID maps a wire identifier back to its Kind.
func KindForID(id uint32) (Kind, bool) {
	for k, l := range layouts {
		if l.id == id {
			return Kind(k), true
		}
	}
	return 0, false
}

// Message is one tag request.
type Message struct {
	Kind Kind
	Args [2]uint32
}

// AllocateBuffer asks the firmware for a framebuffer aligned to align bytes.
// The response carries the base address and size.
func AllocateBuffer(align uint32) Message {
	return Message{Kind: KindAllocateBuffer, Args: [2]uint32{align}}
}

// ReleaseBuffer frees the framebuffer.
func ReleaseBuffer() Message { return Message{Kind: KindReleaseBuffer} }

// GetPhysicalDimensions queries the display width and height.
func GetPhysicalDimensions() Message { return Message{Kind: KindGetPhysicalDimensions} }

// SetPhysicalDimensions sets the display width and height.
func SetPhysicalDimensions(width, height uint32) Message {
	return Message{Kind: KindSetPhysicalDimensions, Args: [2]uint32{width, height}}
}

// GetVirtualDimensions queries the buffer width and height.
func GetVirtualDimensions() Message { return Message{Kind: KindGetVirtualDimensions} }

// SetVirtualDimensions sets the buffer width and height.
func SetVirtualDimensions(width, height uint32) Message {
	return Message{Kind: KindSetVirtualDimensions, Args: [2]uint32{width, height}}
}

// GetBitsPerPixel queries the color depth.
func GetBitsPerPixel() Message { return Message{Kind: KindGetBitsPerPixel} }

// SetBitsPerPixel sets the color depth.
func SetBitsPerPixel(depth uint32) Message {
	return Message{Kind: KindSetBitsPerPixel, Args: [2]uint32{depth}}
}

// GetBytesPerRow queries the pitch.
func GetBytesPerRow() Message { return Message{Kind: KindGetBytesPerRow} }

// Words encodes the tag: identifier, value buffer size, request indicator,
// then the value buffer with the request arguments in front.
func (m Message) Words() []uint32 {
	l := m.Kind.layout()
	w := make([]uint32, 3+l.valueBytes/4)
	w[0] = l.id
	w[1] = l.valueBytes
	w[2] = TagRequest
	copy(w[3:], m.Args[:l.args])
	return w
}

func (m Message) String() string {
	return fmt.Sprintf("%v%v", m.Kind, m.Args[:m.Kind.Args()])
}
