package usecase

import (
	"fmt"
	"strings"

	"github.com/gaiachat/horizon-rag/internal/core/domain"
)

// passageDelimiter separates grounding passages and history messages inside
// prompts. Changing it invalidates recorded token counts, so keep it fixed.
const passageDelimiter = "\n\n-"

const rewordSystemPrompt = `You are an editor. You will be given a query, and a history of a chat with a RAG chatbot. Using this history and the query rewrite the query into a more understandable format.
When rewriting the query remember that it is for a RAG system. You should highlight important information in the query and make it more understandable based on the history.
Also classify the question into one of the following categories to pull data from:
- machine: this category contains information about machines in Horizon.
- society: this category contains information about the cultures and peoples in Horizon.
- location: this category contains information about specific locations and cities in the game.
- object: this category contains information about in game objects.
- character: this category contains information about specific characters.
- other: this category contains information that does not fit into the other categories.`

const answerSystemPrompt = `You are providing information about the Horizon game series. Answer the questions clearly and accurately based only on the provided documents.`

func buildRewordUserPrompt(query string, history []string) string {
	formatted := "None"
	if len(history) > 0 {
		formatted = strings.Join(history, passageDelimiter)
	}

	labels := make([]string, 0, len(domain.Classifications))
	for _, c := range domain.Classifications {
		labels = append(labels, "- "+string(c))
	}

	return fmt.Sprintf(`Here is the query: %s

Here is the chat history, every second paragraph is a response from the RAG app. The others are all user queries.:
%s

Return the rewritten query and the classification of the query. The classification should be in one of the following:
%s

The returned text should be in the dictionary format:
{"classification": "<insert classification>", "query": "<insert query>"}`,
		query, formatted, strings.Join(labels, "\n"))
}

func buildGroundingPrompt(query string, passages []string) string {
	return fmt.Sprintf(`Question: %s

The following is **fictional content from a video game**. Answer the question using only this content:
%s

Answer the question in an informative, concise way using only the information above.`,
		query, strings.Join(passages, passageDelimiter))
}

func buildRelevancyJudgePrompt(answer string) string {
	return fmt.Sprintf("Based on this answer %s, generate 3 possible questions this could have been in response to. Return only the questions, seperate each question by two line breaks.", answer)
}
