package mcpserver

// FrontmatterFormat describes the metadata header dotlint accepts and the
// checks each artifact kind must pass.
const FrontmatterFormat = `# dotlint Frontmatter Format

Skill and agent files open with a metadata header.

## Structure

` + "```" + `markdown
---
name: my-skill
description: |
  First line of the description.
  Second line.
---

# Body in standard Markdown
` + "```" + `

## Header rules

1. The file MUST start with ` + "`" + `---` + "`" + `. No leading blank lines or BOM.
2. The header ends at the next line consisting of ` + "`" + `---` + "`" + ` (trailing spaces allowed).
3. A key line does not start with a space and contains a colon. The first colon
   splits key from value; both sides are trimmed. Quotes are kept as written.
4. ` + "`" + `key: |` + "`" + ` or ` + "`" + `key: >` + "`" + ` starts a block: the following indented lines
   are trimmed and joined with newlines until the next key line.
5. Sequences, nested mappings and flow collections are not interpreted.
6. When a key repeats, the last value wins.

## Checks per kind

| File | Requirements |
|------|--------------|
| ` + "`" + `SKILL.md` + "`" + ` | header with ` + "`" + `name` + "`" + ` (` + "`" + `^[a-z][a-z0-9-]*$` + "`" + `, at most 64 chars) and ` + "`" + `description` + "`" + ` (at most 1024 chars); body of at least 100 chars |
| ` + "`" + `agents/*.md` + "`" + ` | header with ` + "`" + `name` + "`" + ` and ` + "`" + `description` + "`" + `; body of at least 100 chars |
| ` + "`" + `rules/*.md` + "`" + ` | no header; a ` + "`" + `# Title` + "`" + ` heading and at least 200 chars |
| ` + "`" + `commands/*.md` + "`" + ` | no header; a ` + "`" + `# Title` + "`" + ` heading and at least 100 chars |

README.md is exempt under rules/ and agents/.
`
