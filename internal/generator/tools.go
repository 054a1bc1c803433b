package generator

import openai "github.com/sashabaranov/go-openai"

type schema = map[string]interface{}

func stringProp(desc string) schema {
	return schema{"type": "string", "description": desc}
}

func stringArray(desc string, maxItems int) schema {
	return schema{
		"type":        "array",
		"items":       schema{"type": "string"},
		"maxItems":    maxItems,
		"description": desc,
	}
}

var subjectVerdictTool = openai.FunctionDefinition{
	Name:        "submit_subject_verdict",
	Description: "Submit whether the subject is a recognised field of study",
	Parameters: schema{
		"type": "object",
		"properties": schema{
			"valid":       schema{"type": "boolean"},
			"subject":     stringProp("Canonical spelling of the subject when valid"),
			"suggestions": stringArray("Exactly 5 related valid subjects when invalid", 5),
			"message":     stringProp("One sentence addressed to the learner"),
		},
		"required": []string{"valid", "message"},
	},
}

var subSubjectVerdictTool = openai.FunctionDefinition{
	Name:        "submit_sub_subject_verdict",
	Description: "Submit whether the sub-subject belongs to the subject",
	Parameters: schema{
		"type": "object",
		"properties": schema{
			"valid":       schema{"type": "boolean"},
			"subject":     stringProp("Canonical spelling of the subject"),
			"subSubject":  stringProp("Canonical spelling of the sub-subject when valid"),
			"suggestions": stringArray("Up to 5 related sub-subjects when invalid", 5),
			"message":     stringProp("One sentence addressed to the learner"),
		},
		"required": []string{"valid", "message"},
	},
}

var questionsTool = openai.FunctionDefinition{
	Name:        "submit_questions",
	Description: "Submit generated quiz questions",
	Parameters: schema{
		"type": "object",
		"properties": schema{
			"questions": schema{
				"type":     "array",
				"minItems": 10,
				"maxItems": 10,
				"items": schema{
					"type": "object",
					"properties": schema{
						"questionNum": schema{"type": "integer", "minimum": 1, "maximum": 10},
						"question":    stringProp("The question text, 10 to 500 characters"),
						"possibleAnswers": schema{
							"type":     "array",
							"items":    schema{"type": "string"},
							"minItems": 4,
							"maxItems": 4,
						},
						"correctAnswer": schema{
							"type":        "array",
							"items":       schema{"type": "integer", "minimum": 0, "maximum": 3},
							"minItems":    1,
							"maxItems":    4,
							"description": "0-based indices of every correct option",
						},
					},
					"required": []string{"questionNum", "question", "possibleAnswers", "correctAnswer"},
				},
			},
		},
		"required": []string{"questions"},
	},
}

var explanationsTool = openai.FunctionDefinition{
	Name:        "submit_explanations",
	Description: "Submit one explanation per reviewed question",
	Parameters: schema{
		"type": "object",
		"properties": schema{
			"explanations": schema{
				"type": "array",
				"items": schema{
					"type": "object",
					"properties": schema{
						"questionNum": schema{"type": "integer"},
						"explanation": stringProp("At most 1000 characters"),
					},
					"required": []string{"questionNum", "explanation"},
				},
			},
		},
		"required": []string{"explanations"},
	},
}

var reflectionTool = openai.FunctionDefinition{
	Name:        "submit_reflection",
	Description: "Submit a reflection on overall quiz performance",
	Parameters: schema{
		"type": "object",
		"properties": schema{
			"reflection": stringProp("Between 100 and 1000 characters"),
		},
		"required": []string{"reflection"},
	},
}
