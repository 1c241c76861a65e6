// Command aggregate_write_audit reports where intake modules write state.
//
// Writes to conversation tables belong to the conversation aggregate; a module
// method that calls a repo write directly is listed as residual and makes the
// command exit non-zero.
package main

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type methodStats struct {
	Package              string   `json:"package"`
	StructName           string   `json:"struct_name"`
	Method               string   `json:"method"`
	File                 string   `json:"file"`
	Line                 int      `json:"line"`
	RepoWriteCalls       int      `json:"repo_write_calls"`
	RepoFieldsWritten    []string `json:"repo_fields_written,omitempty"`
	AggregateWriteCalls  int      `json:"aggregate_write_calls"`
	AggregateWritesFound []string `json:"aggregate_writes_found,omitempty"`
}

type auditReport struct {
	PackagesScanned         int           `json:"packages_scanned"`
	StructsWithRepoFields   []string      `json:"structs_with_repo_fields"`
	StructsWithAggregates   []string      `json:"structs_with_aggregates"`
	ResidualRepoWriteCalls  int           `json:"residual_repo_write_calls"`
	AggregateOwnedCallsites int           `json:"aggregate_owned_callsites"`
	Residual                []methodStats `json:"residual"`
	AggregateAdoption       []methodStats `json:"aggregate_adoption"`
}

type structFields struct {
	Repos      map[string]string
	Aggregates map[string]string
}

var repoWriteMethods = map[string]bool{
	"Create":       true,
	"Update":       true,
	"UpdateFields": true,
	"Upsert":       true,
	"Delete":       true,
}

var aggregateWriteMethods = map[string]bool{
	"Create":           true,
	"BeginQuestioning": true,
	"RecordAnswer":     true,
}

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	modulesDir := filepath.Join(root, "internal", "modules")

	var dirs []string
	err := filepath.WalkDir(modulesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		exitf("walk %s: %v", modulesDir, err)
	}

	var report auditReport
	repoStructs := map[string]bool{}
	aggStructs := map[string]bool{}
	fset := token.NewFileSet()
	for _, dir := range dirs {
		pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
			name := fi.Name()
			return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
		}, 0)
		if err != nil {
			exitf("parse %s: %v", dir, err)
		}
		for pkgName, pkg := range pkgs {
			report.PackagesScanned++
			fields := map[string]structFields{}
			for _, f := range pkg.Files {
				collectStructFields(f, fields)
			}
			for name, sf := range fields {
				if len(sf.Repos) > 0 {
					repoStructs[pkgName+"."+name] = true
				}
				if len(sf.Aggregates) > 0 {
					aggStructs[pkgName+"."+name] = true
				}
			}
			for filePath, f := range pkg.Files {
				rel, err := filepath.Rel(root, filePath)
				if err != nil {
					rel = filePath
				}
				for _, m := range collectMethodStats(fset, f, filepath.ToSlash(rel), fields) {
					m.Package = pkgName
					if m.RepoWriteCalls > 0 {
						report.ResidualRepoWriteCalls += m.RepoWriteCalls
						report.Residual = append(report.Residual, m)
					}
					if m.AggregateWriteCalls > 0 {
						report.AggregateOwnedCallsites += m.AggregateWriteCalls
						report.AggregateAdoption = append(report.AggregateAdoption, m)
					}
				}
			}
		}
	}
	report.StructsWithRepoFields = sortedKeys(repoStructs)
	report.StructsWithAggregates = sortedKeys(aggStructs)
	sortMethods(report.Residual)
	sortMethods(report.AggregateAdoption)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if report.ResidualRepoWriteCalls > 0 {
		os.Exit(2)
	}
}

func collectStructFields(file *ast.File, out map[string]structFields) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			sf := structFields{Repos: map[string]string{}, Aggregates: map[string]string{}}
			for _, field := range st.Fields.List {
				if len(field.Names) == 0 {
					continue
				}
				sel, ok := field.Type.(*ast.SelectorExpr)
				if !ok {
					continue
				}
				pkgIdent, ok := sel.X.(*ast.Ident)
				if !ok {
					continue
				}
				typeName := sel.Sel.Name
				for _, n := range field.Names {
					switch {
					case pkgIdent.Name == "repos" && strings.HasSuffix(typeName, "Repo"):
						sf.Repos[n.Name] = typeName
					case pkgIdent.Name == "domainagg" && strings.HasSuffix(typeName, "Aggregate"):
						sf.Aggregates[n.Name] = typeName
					}
				}
			}
			if len(sf.Repos) > 0 || len(sf.Aggregates) > 0 {
				out[ts.Name.Name] = sf
			}
		}
	}
}

func collectMethodStats(fset *token.FileSet, file *ast.File, relFile string, fieldsByStruct map[string]structFields) []methodStats {
	var out []methodStats
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Body == nil || len(fd.Recv.List) == 0 {
			continue
		}
		recvName, recvType := recvInfo(fd.Recv.List[0])
		sf, ok := fieldsByStruct[recvType]
		if !ok || recvName == "" {
			continue
		}

		repoCalls, aggCalls := 0, 0
		repoFields := map[string]bool{}
		aggMethods := map[string]bool{}
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fnSel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			field, ok := receiverField(fnSel.X, recvName)
			if !ok {
				return true
			}
			method := fnSel.Sel.Name
			if _, ok := sf.Repos[field]; ok && repoWriteMethods[method] {
				repoCalls++
				repoFields[field] = true
			}
			if _, ok := sf.Aggregates[field]; ok && aggregateWriteMethods[method] {
				aggCalls++
				aggMethods[method] = true
			}
			return true
		})

		out = append(out, methodStats{
			StructName:           recvType,
			Method:               fd.Name.Name,
			File:                 relFile,
			Line:                 fset.Position(fd.Pos()).Line,
			RepoWriteCalls:       repoCalls,
			RepoFieldsWritten:    sortedKeys(repoFields),
			AggregateWriteCalls:  aggCalls,
			AggregateWritesFound: sortedKeys(aggMethods),
		})
	}
	return out
}

// receiverField matches recv.field and recv.deps.field.
func receiverField(x ast.Expr, recvName string) (string, bool) {
	sel, ok := x.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	switch base := sel.X.(type) {
	case *ast.Ident:
		if base.Name == recvName {
			return sel.Sel.Name, true
		}
	case *ast.SelectorExpr:
		if id, ok := base.X.(*ast.Ident); ok && id.Name == recvName {
			return sel.Sel.Name, true
		}
	}
	return "", false
}

func recvInfo(field *ast.Field) (string, string) {
	if field == nil || len(field.Names) == 0 {
		return "", ""
	}
	recvName := field.Names[0].Name
	switch t := field.Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return recvName, id.Name
		}
	case *ast.Ident:
		return recvName, t.Name
	}
	return "", ""
}

func sortMethods(ms []methodStats) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].File == ms[j].File {
			return ms[i].Line < ms[j].Line
		}
		return ms[i].File < ms[j].File
	})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
