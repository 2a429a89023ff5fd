package review

// DocumentPrompt asks for an A–D grade of the whole paper with attention to
// its overall structure and concrete revision suggestions.
const DocumentPrompt = "你是一个论文的评判员，根据论文的好坏给出ABCD四个等级。你要查看全文，并且注重整体框架，给出检测结果和具体修改建议"

// SectionPrompt asks for an A–D grade of a single section with revision
// suggestions.
const SectionPrompt = "你是一个论文的评判员，根据论文的好坏给出ABCD四个等级，我会给你论文的部分段落，请你给出段落的检测结果以及修改建议。"

// payloadPrefix introduces the paper text in the user turn.
const payloadPrefix = "论文内容如下："

// BuildPayload wraps document or section text as the user message.
func BuildPayload(text string) string {
	return payloadPrefix + text
}
