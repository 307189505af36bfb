package prompt

import (
	"strconv"
	"strings"
)

// Placeholder names used by the built-in templates.
const (
	KeyResumeText          = "resume_text"
	KeyConversationText    = "conversation_text"
	KeyScoringInstructions = "scoring_instructions"
	KeyQuestions           = "questions"
	KeyResumeSummary       = "resume_summary"
)

// Summary asks the model for a bounded, structured resume summary.
var Summary = MustParse("summary", `
You are an AI assistant that summarizes resumes for an interview system.
Your output will be used directly by another AI agent to generate interview questions.

Given a detailed resume, generate ONLY a **concise, structured summary** containing the following sections:

1. **Personal Details** - Extract name, email, phone, location, portfolio/GitHub if available.

2. **Role and Summary** - 2-4 sentences describing the candidate's current/target role, years of experience, primary expertise areas, and key technical domains.

3. **Professional Experience** - For each major role (limit to 3-4 most recent/relevant):
   - Company name and role title
   - Duration (if available)
   - 1-3 bullet points highlighting key responsibilities and impact (only if details are provided in the resume)

4. **Key Strengths** - 3-7 bullet points summarizing core technical and professional competencies found in the resume.

5. **Projects** - ONLY if projects are explicitly mentioned in the resume:
   - 2-6 bullet points of projects with name/context, technologies, and outcomes
   - If no projects are listed, write "Not provided"

6. **Notable Achievements** - ONLY if achievements are explicitly mentioned:
   - 2-6 bullet points with specific metrics, awards, publications, or recognition
   - If no achievements are listed, write "Not provided"

7. **Education** - Degree(s), institution(s), specialization, and graduation year (if provided).

8. **Skills & Tools** - Categorize based on the field:
   - For technical roles: Programming languages, frameworks, cloud tools, databases
   - For non-technical roles: Software proficiency, industry-specific tools, methodologies
   - Include any relevant certifications or specialized training

9. **Soft Skills** - 2-6 bullet points covering leadership, communication, collaboration, and other interpersonal skills (only if evident from the resume).

**CRITICAL REQUIREMENTS:**
- Output ONLY the summary in the structured format above.
- Do NOT include introductory statements like "Here's the summary" or any commentary.
- **NEVER fabricate, infer, or add information not explicitly present in the resume.**
- **The summary MUST be shorter than or equal in length to the original resume.**
- For short resumes (under 800 tokens): Keep the summary proportionally brief and concise.
- For long resumes (over 3000 tokens): Target 1500-1800 tokens maximum.
- If a section has no information in the resume, use "Not provided" instead of making up content.
- Focus on information useful for generating technical and behavioral interview questions.
- Avoid unnecessary personal details (DOB, nationality, marital status, etc.).
- Replace missing personal info with "Not provided".
- Use bullet points for readability and structure.

Here is the resume to summarize:
{resume_text}
`)

// Score asks the model for a strict two-field JSON verdict.
var Score = MustParse("score", `You are an AI evaluator. Read the conversation below between AI interviewer(ASSISTANT) and candidate(USER) :

conversation_text:
{conversation_text}

Instructions for scoring:
{scoring_instructions}

Return ONLY a valid JSON object in this exact format:

{{
  "score": <number between 0 and 100>,
  "analysis": "<detailed explanation>"
}}

NO extra text before or after.
NO markdown blocks.
NO commentary.
ONLY the JSON object.
`)

// Interviewer instructs the voice agent that runs the screening interview.
var Interviewer = MustParse("interviewer", `You are an AI interviewer. Your job is to conduct an initial screening for job applicants.
Ask the candidate predefined questions one by one:
{questions}

Candidate resume summary:
{resume_summary}
`)

// InterviewQuestions are asked in order by the interviewer agent.
var InterviewQuestions = []string{
	"Tell me about yourself and your background.",
	"What programming languages and technologies are you most proficient in?",
}

// FormatQuestions renders questions as a numbered list.
func FormatQuestions(questions []string) string {
	var b strings.Builder
	for i, q := range questions {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(q)
	}
	return b.String()
}

// ScoringGuidelines is the rubric substituted into the Score template.
const ScoringGuidelines = `SCORING GUIDELINES (0-100)

Evaluate the candidate(USER) strictly based on the following criteria. The final score must be a single number between 0 and 100.

1. TECHNICAL KNOWLEDGE & ACCURACY (30 points)
- Assess correctness, depth, and clarity of technical explanations.
- 25-30: Excellent - accurate, deep understanding, structured examples.
- 15-24: Good - mostly correct, some depth.
- 5-14: Weak - superficial or partially incorrect.
- 0-4: Very poor - mostly incorrect or irrelevant.

2. PROBLEM-SOLVING & REASONING (20 points)
- Assess whether the candidate can analyze, reason, and propose logical solutions.
- 16-20: Strong analytical reasoning, step-by-step thinking.
- 10-15: Acceptable reasoning but limited structure.
- 5-9: Weak reasoning or unclear thought process.
- 0-4: No meaningful reasoning.

3. COMMUNICATION & CLARITY (20 points)
- Assess whether the candidate communicates clearly and concisely.
- 16-20: Very clear, structured, confident.
- 10-15: Understandable but sometimes verbose or disorganized.
- 5-9: Hard to follow or repetitive.
- 0-4: Very unclear or confusing.

4. RELEVANCE & QUESTION UNDERSTANDING (15 points)
- Assess how directly and accurately the candidate answers the actual question.
- 12-15: Fully relevant, precise, stays on topic.
- 8-11: Mostly relevant with minor drift.
- 4-7: Frequently misunderstands or gives partially irrelevant answers.
- 0-3: Mostly irrelevant or off-topic.

5. PROFESSIONALISM & SOFT SKILLS (15 points)
- Assess politeness, confidence, tone, and professional behavior.
- 12-15: Professional, respectful, confident.
- 8-11: Generally professional but inconsistent.
- 4-7: Casual or mildly unprofessional.
- 0-3: Rude or unprofessional behavior.

FINAL SCORE CALCULATION:
Total Score = Technical (30) + Reasoning (20) + Communication (20) + Relevance (15) + Professionalism (15)

OUTPUT REQUIREMENTS:
Provide:
1. A numerical score (0-100)
2. A detailed analysis along with a final verdict using one of the following:
   - Strong Hire
   - Hire
   - Borderline
   - Do Not Hire
`
