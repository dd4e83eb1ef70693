package h5

import (
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
	fecom "github.com/supernemo-dbd/fecom_go/pkg"
)

// STRLEN is the fixed length of string columns.
const STRLEN = 16

const (
	tableChunk = 32768
	arrayChunk = 32768
)

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &fecom.ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &fecom.ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func newChunkedPropList(chunks []uint, deflate int) (*hdf5.PropList, error) {
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	if err := plist.SetChunk(chunks); err != nil {
		plist.Close()
		return nil, err
	}
	if deflate > 0 {
		if err := plist.SetDeflate(deflate); err != nil {
			plist.Close()
			return nil, err
		}
	}
	return plist, nil
}

// createSampleArray creates an extensible one dimensional int16 dataset.
func createSampleArray(group *hdf5.Group, name string, deflate int) (*hdf5.Dataset, error) {
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	fileSpace, err := hdf5.CreateSimpleDataspace([]uint{0}, []uint{uint(unlimitedDims)})
	if err != nil {
		return nil, &fecom.ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := newChunkedPropList([]uint{arrayChunk}, deflate)
	if err != nil {
		return nil, &fecom.ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	dset, err := group.CreateDatasetWith(name, hdf5.T_NATIVE_INT16, fileSpace, plist)
	if err != nil {
		return nil, &fecom.ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}, deflate int) (*hdf5.Dataset, error) {
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	fileSpace, err := hdf5.CreateSimpleDataspace([]uint{0}, []uint{uint(unlimitedDims)})
	if err != nil {
		return nil, &fecom.ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := newChunkedPropList([]uint{tableChunk}, deflate)
	if err != nil {
		return nil, &fecom.ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &fecom.ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &fecom.ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

// writeArrayToTable appends data after the first offset rows of dataset.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, offset int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	memSpace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return fmt.Errorf("creating memory dataspace: %w", err)
	}
	defer memSpace.Close()

	start := uint(offset)
	if err := dataset.Resize([]uint{start + length}); err != nil {
		return fmt.Errorf("extending dataset to %d rows: %w", start+length, err)
	}
	fileSpace := dataset.Space()
	defer fileSpace.Close()

	if err := fileSpace.SelectHyperslab([]uint{start}, nil, []uint{length}, nil); err != nil {
		return fmt.Errorf("selecting rows %d-%d: %w", start, start+length, err)
	}
	return dataset.WriteSubset(data, memSpace, fileSpace)
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, offset int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, offset)
}
