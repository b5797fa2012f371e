// Package editorproject packages a Task's source tree into a portable
// CodeBlocks IDE project (.cbp + .layout), zipped for download. Recovered
// from original_source/libConCoct/concoct.py's
// Project.create_cb_project, which the top-level spec's distillation
// dropped but the CLI's --project flag still names.
package editorproject

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/3rg0n/concoct/internal/gradingproject"
)

const cbpTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<CodeBlocks_project_file>
	<FileVersion major="1" minor="6"/>
	<Project>
		<Option title="%s"/>
		<Option compiler="gcc"/>
		<Build>
			<Target title="Debug">
				<Option output="%s" prefix_auto="1" extension_auto="1"/>
				<Option object_output=".objs/"/>
				<Option type="1"/>
				<Option compiler="gcc"/>
				<Compiler>
					<Add option="-g"/>
				</Compiler>
			</Target>
		</Build>
		<Compiler>
			<Add option="-Wall"/>
%s		</Compiler>
%s	</Project>
</CodeBlocks_project_file>
`

const layoutTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<CodeBlocks_layout_file>
	<ActiveTarget name="Debug"/>
</CodeBlocks_layout_file>
`

// Export builds a CodeBlocks project bundle for project into a ZIP
// archive at zipPath: the project's file list, every header discovered
// under its include directories (the original's glob.glob(d + '/*.h')),
// and the task's description file.
func Export(project *gradingproject.Project, descriptionPath, zipPath string) error {
	zf, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer zf.Close()

	zw := zip.NewWriter(zf)
	defer zw.Close()

	headers, err := discoverHeaders(project.Include)
	if err != nil {
		return err
	}

	var unitsXML, headerUnitsXML strings.Builder
	for _, f := range project.Files {
		name := filepath.Base(f)
		fmt.Fprintf(&unitsXML, "\t\t<Unit filename=\"%s\"/>\n", name)
		if err := addFileToZip(zw, f, name); err != nil {
			return err
		}
	}
	for _, h := range headers {
		name := filepath.Base(h)
		fmt.Fprintf(&headerUnitsXML, "\t\t<Unit filename=\"%s\"/>\n", name)
		if err := addFileToZip(zw, h, name); err != nil {
			return err
		}
	}

	if descriptionPath != "" {
		if _, err := os.Stat(descriptionPath); err == nil {
			if err := addFileToZip(zw, descriptionPath, filepath.Base(descriptionPath)); err != nil {
				return err
			}
		}
	}

	cbp := fmt.Sprintf(cbpTemplate, project.Name, project.Target, "", unitsXML.String()+headerUnitsXML.String())
	if err := addBytesToZip(zw, project.Name+".cbp", []byte(cbp)); err != nil {
		return err
	}
	if err := addBytesToZip(zw, project.Name+".layout", []byte(layoutTemplate)); err != nil {
		return err
	}
	return nil
}

// discoverHeaders globs *.h in every include directory, the Go analogue
// of the original's glob.glob(d + '/*.h').
func discoverHeaders(includeDirs []string) ([]string, error) {
	var headers []string
	for _, dir := range includeDirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.h"))
		if err != nil {
			return nil, err
		}
		headers = append(headers, matches...)
	}
	return headers, nil
}

func addFileToZip(zw *zip.Writer, srcPath, nameInZip string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	return addBytesToZip(zw, nameInZip, data)
}

func addBytesToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, strings.NewReader(string(data)))
	return err
}
