package pipeline

import (
	"regexp"

	"github.com/Camelus33/tedin-sub000/model"
)

// Time expressions recognized for the time role: ISO dates, Korean date
// units and common relative words.
var timeExpressionPattern = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}|\d{4}년|\d{1,2}월|\d{1,2}일|(?i:yesterday|today|tomorrow)`,
)

// assignSemanticRoles groups the extracted dependencies by predicate and
// assigns argument roles: agent (subject or topic), patient (object),
// location, and time from surface time expressions.
func assignSemanticRoles(text string, dependencies []model.Dependency) []model.SemanticRole {
	timeExpression := timeExpressionPattern.FindString(text)

	byPredicate := make(map[string]*model.SemanticRole)
	var order []string

	for _, dep := range dependencies {
		role, ok := byPredicate[dep.Head]
		if !ok {
			role = &model.SemanticRole{Predicate: dep.Head, Time: timeExpression}
			byPredicate[dep.Head] = role
			order = append(order, dep.Head)
		}

		switch dep.Relation {
		case relationSubject, relationTopic:
			if role.Agent == "" {
				role.Agent = dep.Dependent
			}
		case relationObject:
			if role.Patient == "" {
				role.Patient = dep.Dependent
			}
		case relationLocation:
			if role.Location == "" {
				role.Location = dep.Dependent
			}
		}

		// Running average over the contributing dependencies.
		if role.Confidence == 0 {
			role.Confidence = dep.Confidence
		} else {
			role.Confidence = (role.Confidence + dep.Confidence) / 2
		}
	}

	roles := make([]model.SemanticRole, 0, len(order))
	for _, predicate := range order {
		roles = append(roles, *byPredicate[predicate])
	}

	return roles
}
