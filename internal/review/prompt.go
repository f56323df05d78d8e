package review

import (
	"fmt"
	"strings"
)

func reviewPrompt(code, language, summary string, rejected []string) string {
	avoid := "No previously rejected suggestions."
	if len(rejected) > 0 {
		seen := make(map[string]struct{}, len(rejected))
		var lines []string
		for _, r := range rejected {
			r = strings.TrimSpace(r)
			if _, dup := seen[r]; dup || r == "" {
				continue
			}
			seen[r] = struct{}{}
			lines = append(lines, "- "+r)
		}
		if len(lines) > 0 {
			avoid = strings.Join(lines, "\n")
		}
	}

	return fmt.Sprintf(`You are an expert %[1]s code reviewer. Analyze the following code and provide detailed, actionable suggestions for improvement.

USER PREFERENCE CONTEXT (adapt your suggestions accordingly):
%[2]s

IMPORTANT: DO NOT suggest the following things again, as the user has explicitly rejected them:
%[3]s

Focus on:
- Code quality and best practices
- Performance optimizations
- Readability and maintainability
- Potential bugs or edge cases
- Security concerns if applicable

For each suggestion, provide:
1. The specific line number(s) or code snippet where the issue occurs
2. A severity level (High, Medium, Low) based on the issue's impact or urgency
3. A clear description of the issue or improvement
4. An explanation of why the change is beneficial
5. A concise improved code snippet (if applicable)

Format each suggestion as follows:
- **Line(s):** {line number(s) or 'General' if not specific}
- **Severity:** {High, Medium, or Low}
- **Issue:** {description of the issue or improvement}
- **Improved Code (if applicable):** `+"```"+`%[1]s
{improved code}
`+"```"+`

Return suggestions, each formatted as above, separated by '--- SUGGESTION {n} ---'.

CODE:
%[4]s

SUGGESTIONS:`, language, summary, avoid, code)
}

func acceptPrompt(language, code, suggestion string) string {
	return fmt.Sprintf(`You are an expert %s developer. Apply ONLY the following specific suggestion to the provided code.

CODE:
%s

SPECIFIC SUGGESTION TO APPLY:
%s

STRICT INSTRUCTIONS:
1. Apply ONLY this exact suggestion as stated
2. Make the minimal change necessary to implement just this suggestion
3. Do NOT make any other improvements or changes to the code
4. Do NOT fix other issues, bugs, or duplicate code
5. Do NOT add imports unless explicitly required by this suggestion
6. Return ONLY the modified code with this one change
7. Preserve ALL other parts of the code exactly as they are
8. If the suggestion cannot be applied as stated, return the original code unchanged

MODIFIED CODE:`, languageOrDefault(language), code, suggestion)
}

func modifyPrompt(language, original, modified string) string {
	return fmt.Sprintf(`You are an expert code reviewer analyzing %s code.
A reviewer suggested:
%s

The developer rewrote the suggestion as:
%s

INSTRUCTIONS:
1. Restate the developer's version as a clear, actionable review suggestion
2. Keep the developer's intent; do not reintroduce what they removed
3. Be concise but specific - mention what to change and why
4. Do NOT include any introductory or concluding text
5. Do NOT rewrite the entire code

SUGGESTION:`, languageOrDefault(language), original, modified)
}

func languageOrDefault(language string) string {
	if strings.TrimSpace(language) == "" {
		return "software"
	}
	return language
}

// stripCodeFences removes a surrounding markdown code fence from model output
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimRight(s, " \t\r\n"), "```")
	return strings.TrimRight(s, " \t\r\n")
}
