package db

import "strings"

// LikeEscape is the escape clause matching ContainsPattern.
const LikeEscape = `ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns term into a LIKE pattern that matches it literally
// anywhere in the column. Use it together with LikeEscape.
func ContainsPattern(term string) string {
	return "%" + likeReplacer.Replace(term) + "%"
}
