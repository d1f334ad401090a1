package mcpserver

// DocumentFormat describes the graph document JSON that the viewer loads.
const DocumentFormat = `# Sitegraph Document Format

A graph document is one JSON object keyed by node id.

## Structure

` + "```" + `json
{
  "nodes": {
    "HomePage": {
      "title": "Welcome",
      "links": [
        {"link": "Go (topic)"},
        {"link": "Notes", "displayText": "my notes"}
      ]
    },
    "Go (topic)": {"links": []},
    "Notes": {"title": "Notes", "links": [{"link": "HomePage"}]}
  }
}
` + "```" + `

## Rules

1. **Node ids** are non-empty strings. They are the keys of ` + "`" + `nodes` + "`" + `.
2. **title** is optional. Without it the id is shown.
3. **links** is an ordered list. Each entry needs a non-empty ` + "`" + `link` + "`" + ` target;
   ` + "`" + `displayText` + "`" + ` is optional.
4. **Repeated links** to the same target are separate edges.
5. **Dangling links** (targets that are not node ids) are allowed and ignored
   by the layout, the path finder and the highlight sets.
6. **Topics**: a node whose title (or id) ends with the topic marker, ` + "`" + `(topic)` + "`" + `
   by default, costs less to pass through when finding paths.
7. **Home**: the root node is ` + "`" + `HomePage` + "`" + ` unless configured otherwise. When it is
   missing, the smallest id is used.

## Path cost

Leaving a node costs its number of outgoing links, discounted to a tenth for
topic nodes. ` + "`" + `find_path` + "`" + ` returns the cheapest route and its cost.
`
