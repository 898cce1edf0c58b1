package domain

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// TopicFileName maps a topic to the document name that holds it. Topics
// without an extension resolve to a JSON document.
func TopicFileName(topic string) string {
	if path.Ext(topic) == "" {
		return topic + ".json"
	}
	return topic
}

// TopicName strips the document extension from a file name.
func TopicName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// ParseQuestionSet decodes the question document called name. YAML is used for
// .yaml and .yml documents, JSON for everything else. The document may hold a
// bare list of questions or an object with a questions field.
func ParseQuestionSet(topic, name string, data []byte) (QuestionSet, error) {
	unmarshal := json.Unmarshal
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	var questions []Question
	if err := unmarshal(data, &questions); err == nil {
		return QuestionSet{Topic: topic, Questions: questions}, nil
	}

	var set QuestionSet
	if err := unmarshal(data, &set); err != nil {
		return QuestionSet{}, fmt.Errorf("%w: %v", ErrMalformedQuestionSet, err)
	}
	if set.Topic == "" {
		set.Topic = topic
	}
	return set, nil
}
