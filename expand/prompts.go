package expand

import "github.com/tmc/langchaingo/prompts"

var expansionPrompt = prompts.NewPromptTemplate(`Tu es un expert en recherche juridique québécoise.

Génère 5 requêtes de recherche alternatives pour trouver l'information dans une base de données juridique.

**RÈGLES IMPORTANTES:**
1. Utilise des termes juridiques précis du Québec
2. Inclus des variations avec numéros d'articles si pertinent
3. Reformule avec synonymes juridiques
4. Pense aux codes pertinents (C.c.Q., C.p.c., Code criminel, etc.)
5. Considère les concepts juridiques connexes

**EXEMPLES DE BONNES REQUÊTES:**
- Question: "Comment divorcer au Québec?"
  Requêtes:
  1. divorce procédure Québec conditions
  2. dissolution mariage Code civil Québec
  3. séparation légale conjoints articles 516-521 CCQ
  4. rupture union matrimoniale formalités
  5. fin mariage divorce contentieux

**Question de l'utilisateur:** {{.question}}

**Génère UNIQUEMENT 5 requêtes, une par ligne, sans numérotation:**
`, []string{"question"})
