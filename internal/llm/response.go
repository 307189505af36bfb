package llm

// BlockKind discriminates content blocks in a multi-part response.
type BlockKind string

const (
	KindText     BlockKind = "text"
	KindToolCall BlockKind = "tool_call"
	KindThought  BlockKind = "thought"
)

// Response is the raw result of one model invocation.
type Response struct {
	Content      Content
	Model        string
	FinishReason string
}

// Content is the payload of a Response. It is one of PlainText, BlockSequence
// or RawContent.
type Content interface {
	isContent()
}

// PlainText is a response payload delivered as a single string.
type PlainText string

// BlockSequence is a response payload delivered as ordered typed blocks.
type BlockSequence []Block

// RawContent wraps a provider payload that has neither of the expected shapes.
type RawContent struct {
	Value any
}

func (PlainText) isContent()     {}
func (BlockSequence) isContent() {}
func (RawContent) isContent()    {}

// Block is one unit of a BlockSequence. It is one of TextBlock, ToolCallBlock,
// ThoughtBlock or OpaqueBlock.
type Block interface {
	Kind() BlockKind
}

// TextBlock carries model output text.
type TextBlock struct {
	Text string
}

// ToolCallBlock records a tool or function invocation requested by the model.
type ToolCallBlock struct {
	ID        string
	Name      string
	Arguments string
}

// ThoughtBlock carries reasoning text that is not part of the answer.
type ThoughtBlock struct {
	Text string
}

// OpaqueBlock is any block kind this package does not model.
type OpaqueBlock struct {
	Type string
}

func (TextBlock) Kind() BlockKind     { return KindText }
func (ToolCallBlock) Kind() BlockKind { return KindToolCall }
func (ThoughtBlock) Kind() BlockKind  { return KindThought }
func (b OpaqueBlock) Kind() BlockKind { return BlockKind(b.Type) }
